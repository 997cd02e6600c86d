package vars

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/earthfall/RestClient/internal/errdef"
)

// readDotEnv parses a .env file into a flat map. Absence is fine; the overlay
// is strictly optional.
func readDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "stat dotenv file %s", path)
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeEnv, err, "parse dotenv file %s", path)
	}
	return values, nil
}
