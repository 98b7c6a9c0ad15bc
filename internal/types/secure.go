package types

// redactedPlaceholder replaces secret values in logs and serialization.
const redactedPlaceholder = "***REDACTED***"

var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString is a string that never prints or serializes its value.
// Use Unmask() to obtain the plaintext when it is genuinely needed, such as
// when building an outbound request to the weather provider.
type SecretString string

// String returns a redacted placeholder instead of the raw value.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// MarshalYAML keeps secrets out of YAML dumps as well.
func (s SecretString) MarshalYAML() (any, error) {
	return redactedPlaceholder, nil
}

// Unmask returns the raw plaintext value of the secret.
func (s SecretString) Unmask() string {
	return string(s)
}

// IsSet reports whether the secret holds a non-empty value.
func (s SecretString) IsSet() bool {
	return s != ""
}
