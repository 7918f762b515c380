// Package config loads structcol configuration from YAML.
//
// Values of the form ${VAR_NAME} are replaced with environment variables
// before parsing, so credentials and buckets can stay out of the file:
//
//	output:
//	  format: parquet
//	  compression: zstd
//	storage:
//	  kind: s3
//	  bucket: ${STRUCTCOL_BUCKET}
//	  region: us-east-1
//	  root: tables
//	dtypes:
//	  - "dist[categorical, low, mid, high]"
//
// Fields not present in the file keep the values from Default.
package config
