package version

// Version is the current version of the consult tools.
// This value can be overridden at build time using:
//
//	go build -ldflags="-X 'github.com/rohan4324/Furever-App-sub000/internal/version.Version=v1.0.0'"
var Version = "dev"
