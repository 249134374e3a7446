package distributed

import "github.com/google/uuid"

// tableKeys holds the Redis key names for one table. Hashes are keyed
// by resource name so one table of any size uses a fixed set of keys.
type tableKeys struct {
	limits    string // hash: resource name -> configured capacity
	avail     string // hash: resource name -> available permits
	waiting   string // hash: resource name -> blocked acquisitions
	instances string // set: registered instance IDs
}

func newTableKeys(prefix string) tableKeys {
	return tableKeys{
		limits:    prefix + ":limits",
		avail:     prefix + ":avail",
		waiting:   prefix + ":waiting",
		instances: prefix + ":instances",
	}
}

// generateInstanceID creates a unique identifier for this process.
func generateInstanceID() string {
	return uuid.NewString()
}
