// ABOUTME: Version and product identification
// ABOUTME: Reported by the CLI, the feed server and mDNS records
package version

const (
	// Version is the release version
	Version = "0.1.0"

	// Product is the product name
	Product = "sportsbrief"

	// Manufacturer identifies the publisher
	Manufacturer = "harperreed"
)
