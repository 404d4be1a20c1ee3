package interfaces

// DownloadStore gives read access to the browser download directory
type DownloadStore interface {
	// Dir returns the absolute download directory
	Dir() string

	// Exists checks whether a file with the given name has been downloaded
	Exists(name string) (bool, error)
}
