// Package document stores text together with its provenance metadata.
//
// Two on-disk layouts are supported. Files with the embedded suffix (".lakra"
// by default) carry the encoded envelope after the text:
//
//	<text>
//
//	<!-- GHOSTKEY_METADATA_START -->
//	{"ghostkey_metadata":{...}}
//	<!-- GHOSTKEY_METADATA_END -->
//
// Any file may also have a sidecar (path + ".meta") holding the envelope alone.
// Other files are plain text and load without metadata.
package document
