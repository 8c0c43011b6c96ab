package client

const libraryVersion = "0.1.0"

// Version returns the current version of the snowkit client
func Version() string {
	return libraryVersion
}

// Application returns the application identifier sent to the warehouse at
// connection time.
func Application() string {
	return "snowkit/" + libraryVersion
}
