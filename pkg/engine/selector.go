package engine

import (
	"net/http"

	"github.com/virtmock/virtmock/internal/storage"
	"github.com/virtmock/virtmock/pkg/virt"
)

// selectResponse looks up the response to serve using three fallback
// tiers, each consulted only when the previous one yielded nothing:
//
//  1. responses stored under the exact computed dispatch criteria;
//  2. responses whose name equals the criteria (JSON_BODY and SCRIPT
//     evaluations name a response directly);
//  3. every response of the operation (covers the NONE dispatcher and
//     permissive verbs with no criteria).
//
// Within the winning tier the candidate set is narrowed by content
// negotiation. A nil response with nil error means no candidate exists
// anywhere, which is a normal outcome.
func selectResponse(store storage.ResponseStore, operationID, criteria string, hasCriteria bool, r *http.Request) (*virt.Response, error) {
	var candidates []*virt.Response
	var err error

	if hasCriteria {
		candidates, err = store.FindByOperationIDAndDispatchCriteria(operationID, criteria)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			candidates, err = store.FindByOperationIDAndName(operationID, criteria)
			if err != nil {
				return nil, err
			}
		}
	}

	if len(candidates) == 0 {
		candidates, err = store.FindByOperationID(operationID)
		if err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return selectByMediaType(candidates, r.Header.Get("Accept")), nil
}

// selectByMediaType prefers a response whose media type equals the
// request's Accept value; without an Accept header, or when nothing
// matches, the first candidate in store order wins.
func selectByMediaType(candidates []*virt.Response, accept string) *virt.Response {
	if accept != "" {
		for _, c := range candidates {
			if c.MediaType == accept {
				return c
			}
		}
	}
	return candidates[0]
}
