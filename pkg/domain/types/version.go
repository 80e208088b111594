package types

// Version is the groundwork release version, overridden at link time.
var Version = "dev"
