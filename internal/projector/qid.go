package projector

import "strings"

// Separator joins ancestor keys into a qualified id.
const Separator = "__"

// JoinID builds a qualified id from keys, root first.
func JoinID(keys ...string) string { return strings.Join(keys, Separator) }

// SplitID breaks a qualified id into its keys.
func SplitID(qid string) []string {
	if qid == "" {
		return nil
	}
	return strings.Split(qid, Separator)
}

// ParentID strips the last key from qid. ok is false for single-key ids.
func ParentID(qid string) (string, bool) {
	i := strings.LastIndex(qid, Separator)
	if i <= 0 {
		return "", false
	}
	return qid[:i], true
}

// DotPath rewrites a qualified id into dot notation (address__street -> address.street).
func DotPath(qid string) string {
	return strings.ReplaceAll(qid, Separator, ".")
}
