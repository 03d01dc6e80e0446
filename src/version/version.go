package version

// Version is the CLI version. Overridden at build time via
// -ldflags "-X n8n-restore/src/version.Version=...".
var Version = "0.3.0-dev"
