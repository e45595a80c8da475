package main

import "os"

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(Execute())
}
