package store

const sessionPrefix = "session:"

func sessionKey(listID string) []byte {
	key := make([]byte, 0, len(sessionPrefix)+len(listID))
	key = append(key, sessionPrefix...)
	return append(key, listID...)
}

func listIDFromKey(key []byte) string {
	return string(key[len(sessionPrefix):])
}
