package version

// Version is the application version, overridable at build time via
// -ldflags "-X airwavego/pkg/version.Version=v1.2.3".
var Version = "dev"
