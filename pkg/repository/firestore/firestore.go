package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/interfaces"
)

// Firestore builds vector indexes in Firestore. Each build lives in its own
// subcollection so a rebuild never touches the chunks of an earlier one.
type Firestore struct {
	client           *firestore.Client
	embedder         interfaces.Embedder
	collectionPrefix string
}

var _ interfaces.Indexer = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

// New connects to Firestore. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, embedder interfaces.Embedder, opts ...Option) (*Firestore, error) {
	if embedder == nil {
		return nil, goerr.New("embedder is required")
	}

	var client *firestore.Client
	var err error
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:   client,
		embedder: embedder,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *Firestore) indexesCollection() *firestore.CollectionRef {
	return f.client.Collection(f.collectionPrefix + "indexes")
}
