// Package output serializes reports and writes build artifacts.
//
// The package is organized around four concerns:
//
//   - Serialization (serializer.go): YAML and JSON with deterministic key
//     ordering and null stripping.
//
//   - Writers (writer.go): Pluggable output destinations via the [Writer]
//     interface, with [StdoutWriter] and [FileWriter] implementations. A
//     FileWriter can also emit a gzip-compressed sibling.
//
//   - Filenames (filename.go): Output filename templates with [name], [ext]
//     and content-hash placeholders.
//
//   - Validation reports (report.go): a [Report] of findings about a build
//     definition, each keeping its cause error.
package output
