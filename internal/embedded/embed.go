// Package embedded ships the default configuration data compiled into
// the placemap binary. The embedded trust table is the fallback used
// when no table is supplied at construction or via file.
package embedded

import _ "embed"

// TrustTable contains the default connector trust table in YAML format.
// Loaded by trust.Default.
//
//go:embed trust.yaml
var TrustTable []byte
