package seed

import (
	"bytes"
	"streamdb/internal/storage"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// ClearPasswords attempts to overwrite the seed file with passwords removed.
// Failures are logged, never returned: the seeded data is already in place.
func ClearPasswords(f File, path string, log *logrus.Logger) bool {
	log.Info("Attempting to clear passwords from seed file...")

	// Create a buffer to write the new TOML data
	buf := new(bytes.Buffer)

	users := make([]User, len(f.Users))
	copy(users, f.Users)
	for i := range users {
		users[i].Password = ""
	}
	f.Users = users

	if err := toml.NewEncoder(buf).Encode(f); err != nil {
		log.Warnf("Could not re-encode seed file to clear passwords: %v", err)
		log.Warnf("SECURITY: Please manually remove passwords from '%s'", path)
		return false
	}

	if _, err := storage.SaveFile(buf, path, 0600); err != nil {
		log.Warnf("Failed to write back to seed file to clear passwords: %v", err)
		log.Warnf("SECURITY: Please manually remove passwords from '%s'", path)
		return false
	}

	log.Info("Successfully cleared passwords from seed file.")
	return true
}
