// Package fingerprint computes a content hash of the native parts of a React
// Native project. Two checkouts with the same fingerprint can reuse the same
// native build.
//
// The hash covers, in order: the platform directory (ios/ or android/), the
// dependency maps of package.json, the patches/ directory and any extra
// sources configured in .nativeci.yaml:
//
//	fingerprint:
//	  extraSources:
//	    - react-native.config.js
//	    - "scripts/native/**/*.sh"
//	  ignorePaths:
//	    - "ios/tmp/**"
//
// Build outputs and machine-local files (Pods, Gradle caches, xcuserdata,
// local.properties) are ignored by default.
package fingerprint
