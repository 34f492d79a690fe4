// Package resources serves the UI's static assets: the stylesheet and
// anything else under static/.
package resources

// StaticDirectoryPath is the path to static assets from the project root.
const StaticDirectoryPath = "internal/ui/resources/static"

// Stylesheet is the application stylesheet's file name.
const Stylesheet = "datapulse.css"

// StaticPath returns the URL path for a static asset.
func StaticPath(path string) string {
	return "/static/" + path
}
