package minio

import (
	"context"
	"strings"

	"github.com/turtacn/claimtrack/internal/domain/narrative"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
)

// DocumentLinker turns narrative document refs into presigned links. Claim
// documents are stored as "<external id>/<ref in kebab case>.pdf".
type DocumentLinker struct {
	client *MinIOClient
	logger logging.Logger
}

func NewDocumentLinker(client *MinIOClient, log logging.Logger) *DocumentLinker {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &DocumentLinker{client: client, logger: log.Named("documents")}
}

// ObjectKey returns the storage key of a claim document.
func ObjectKey(externalID string, ref narrative.DocumentRef) string {
	return externalID + "/" + strings.ReplaceAll(strings.ToLower(string(ref)), "_", "-") + ".pdf"
}

// Links returns a link per stored document. Documents not yet generated are
// left out; any other store failure aborts.
func (l *DocumentLinker) Links(ctx context.Context, externalID string, refs []narrative.DocumentRef) (map[narrative.DocumentRef]string, error) {
	links := make(map[narrative.DocumentRef]string, len(refs))
	for _, ref := range refs {
		key := ObjectKey(externalID, ref)
		ok, err := l.client.ObjectExists(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			l.logger.Debug("document not stored", logging.String("external_id", externalID), logging.String("document", string(ref)))
			continue
		}
		u, err := l.client.PresignedGetURL(ctx, key, 0)
		if err != nil {
			return nil, err
		}
		links[ref] = u
	}
	return links, nil
}
