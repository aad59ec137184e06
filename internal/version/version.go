package version

// Version is the application version, overridden at build time with
// -ldflags "-X github.com/alvmarrod/sidebar-weaver/internal/version.Version=..."
var Version = "0.1.0"
