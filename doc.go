// Package structcol stores columns of structured values, such as probability
// distributions, as contiguous fixed-layout float64 records.
//
// A column of N values with a record layout of W fields is backed by one
// []float64 of N*W values. Individual fields project as strided views that
// alias the column storage, and columns convert to and from Apache Arrow
// struct arrays without losing their dtype.
//
// # Architecture
//
//   - pkg/structured: record layouts, the column buffer, field views, the
//     Arrow bridge and the dtype registry.
//   - pkg/dist: Bernoulli, log-normal and categorical distribution dtypes,
//     with conversion to gonum distributions.
//   - pkg/columnar: named tables of columns and the compressed snapshot codec.
//   - pkg/formats/columnar: Parquet, Arrow IPC and Avro persistence.
//   - pkg/storage: local, S3 and GCS object stores.
//   - pkg/compression, pkg/config, pkg/errors, pkg/logger, pkg/metrics:
//     supporting infrastructure.
//
// # Quick Start
//
//	reg := structured.Default()
//	if err := dist.RegisterBuiltins(reg); err != nil {
//	    log.Fatal(err)
//	}
//
//	d, _ := reg.Lookup("dist[categorical, a, b]")
//	buf, _ := structured.Empty(5, d)
//	_ = buf.Set(4, dist.Categorical{Theta: []float64{0.5, 0.5}, Dtype: d.(*dist.CategoricalDtype)})
//
//	a, _ := buf.Field("a")
//	fmt.Println(a.Values()) // [NaN NaN NaN NaN 0.5]
//
// # Command Line
//
// The structcol command lists and parses dtypes and persists, inspects and
// converts tables:
//
//	structcol --config structcol.yaml demo
//	structcol inspect demo.parquet
//	structcol convert demo.parquet demo.avro
package structcol
