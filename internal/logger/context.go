package logger

// Component-specific logger functions

// Store returns a logger for entity store operations
func Store() Logger {
	return WithField("component", "store")
}

// Position returns a logger for position management operations
func Position() Logger {
	return WithField("component", "position")
}

// Migration returns a logger for migration operations
func Migration() Logger {
	return WithField("component", "migration")
}

// DB returns a logger for database operations
func DB() Logger {
	return WithField("component", "db")
}

// CLI returns a logger for CLI operations
func CLI() Logger {
	return WithField("component", "cli")
}
