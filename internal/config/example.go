package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todo configuration file
# Values can be overridden by TODO_* environment variables or CLI flags

# Storage backend: file, sqlite, mysql or memory
storage_backend = "file"

# Data directory for the file and sqlite backends (supports ~ expansion)
data_dir = "~/.todo"

# Key the task list is stored under
storage_key = "tasks"

# Required for storage_backend = "mysql"
# mysql_dsn = "user:password@tcp(127.0.0.1:3306)/todo"

# JSON Schema used to validate the stored list (default: embedded schema)
# schema_file = "~/.todo/tasks.schema.json"

# Task id scheme: timestamp (decimal milliseconds) or uuid7
id_scheme = "timestamp"

# Allow edit to replace a task's text with blank text
allow_empty_edit = false

# Timeout for each storage write, in milliseconds (0 disables)
write_timeout_ms = 5000

# Logging
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false
# log_file = "~/.todo/todo.log"

[ui]
# Duration of each half of the add-button pulse, in milliseconds
pulse_ms = 300
animate = true
`
}
