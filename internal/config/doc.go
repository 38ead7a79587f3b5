// Package config provides configuration loading for the converter.
//
// The converter has no configuration file. All settings are optional and come
// from CONVERT_* environment variables processed with envconfig, then
// validated with validator/v10 struct tags. Command-line flags override the
// environment after loading.
//
//	CONVERT_LOGGING_LEVEL=info          debug | info | warn | error
//	CONVERT_LOGGING_OUTPUT=both         console | file | both
//	CONVERT_LOGGING_FILE_PATH=logs/convert.log
//	CONVERT_INPUT_DIR=.                 directory scanned for *.csv
//	CONVERT_INPUT_TIMEZONE=UTC          zone of the export's dates (default Local)
//	CONVERT_TELEMETRY_TRACE_FILE=trace.json
//	CONVERT_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/convert.prom
package config
