// internal/docpath/doc.go

/*
Package docpath provides a structured representation of the dotted paths used
to address nodes inside config and state documents.

The format is a dot-separated sequence of segments, each a mapping key with
an optional sequence index, e.g. `user.name`, `deployments[0].id`.

Keys may contain any character except '.', '[' and ']', so kebab-case config
keys such as `ec-auth-key` are single segments.
*/
package docpath
