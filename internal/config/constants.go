package config

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "CONVERT"

// OutputExtension is appended to the output base name given on the command line
const OutputExtension = ".csv"

// InputPattern selects candidate exports during discovery
const InputPattern = "*.csv"
