package source

import (
	"context"
	"fmt"
)

// Options selects and configures a Store.
type Options struct {
	Driver string

	// firestore
	ProjectID       string
	CredentialsJSON []byte

	// mongo
	MongoURI      string
	MongoDatabase string

	// json
	JSONDir string
}

func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverFirestore:
		return OpenFirestore(ctx, opts.ProjectID, opts.CredentialsJSON)
	case DriverMongo:
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	case DriverJSON:
		return OpenJSONDir(opts.JSONDir)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
}
