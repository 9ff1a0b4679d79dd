package podman

// Argument-encoder helpers shared by every compiled invocation.
//
// Keys and values are treated as opaque byte sequences: Go strings carry
// arbitrary bytes, so nothing here assumes valid UTF-8. The compiler emits
// discrete argv elements, which makes shell metacharacters inert — values are
// never quoted or escaped, and "=" is inserted verbatim as the sole
// separator.

// appendFlag appends name iff on is true.
func appendFlag(args []string, on bool, name string) []string {
	if on {
		args = append(args, name)
	}
	return args
}

// appendOpt appends [name, value] iff value is non-empty. An empty value
// means the option is absent and the runtime's own default applies.
func appendOpt(args []string, name, value string) []string {
	if value != "" {
		args = append(args, name, value)
	}
	return args
}

// appendStorageOpt appends ["--storage-opt", "name=value"] iff value is
// non-empty.
func appendStorageOpt(args []string, name, value string) []string {
	if value != "" {
		args = append(args, "--storage-opt", keyVal(name, value))
	}
	return args
}

// keyVal joins key and value with a literal "=". Embedded "=" or non-text
// bytes in either operand pass through untouched.
func keyVal(key, value string) string {
	return key + "=" + value
}
