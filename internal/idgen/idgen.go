package idgen

import gonanoid "github.com/matoous/go-nanoid/v2"

// ID returns a short random identifier.
func ID() string {
	i, _ := gonanoid.New()
	return i
}
