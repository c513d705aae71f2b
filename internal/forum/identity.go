package forum

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

var anonPrefixes = []string{
	"Anon", "Ghost", "Shadow", "Phantom", "Mystery", "Unknown",
	"Cipher", "Void", "Echo", "Raven", "Sage", "Nova",
}

// newID возвращает UUIDv7: метка времени плюс случайный хвост.
// Реестр выданных ID не ведется, коллизии считаются пренебрежимыми.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// newAnonID - косметическое имя вида Raven4821, не связанное с доступом
func newAnonID(rnd *rand.Rand) string {
	prefix := anonPrefixes[rnd.IntN(len(anonPrefixes))]
	return fmt.Sprintf("%s%d", prefix, 1000+rnd.IntN(9000))
}
