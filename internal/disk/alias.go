package disk

import "fmt"

// AliasMode controls how LVM aliases replace device names.
type AliasMode string

const (
	AliasNone AliasMode = "none"
	AliasOnly AliasMode = "only"
	AliasBoth AliasMode = "both"
)

// ParseAliasMode validates an alias mode name.
func ParseAliasMode(s string) (AliasMode, error) {
	switch m := AliasMode(s); m {
	case AliasNone, AliasOnly, AliasBoth:
		return m, nil
	case "":
		return AliasNone, nil
	}
	return "", fmt.Errorf("invalid lvm alias mode %q (want none, only or both)", s)
}
