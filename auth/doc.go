// Package auth authenticates steps as a GitHub App.
//
// A workflow that cannot use the default GITHUB_TOKEN (for example because
// comments must be posted under the app's identity) supplies an app id and
// private key instead. The package signs a short-lived RS256 JWT for the
// app and exchanges it for an installation token:
//
//	exchanger := auth.NewExchanger(client, logger)
//	token, err := exchanger.Exchange(ctx, auth.AppConfig{
//	    AppID:      appID,
//	    PrivateKey: []byte(privateKeyPEM),
//	}, 0, "acme", "app")
//	// token.Token authenticates as the installation for about an hour
//
// A zero installation id is looked up from the repository.
package auth
