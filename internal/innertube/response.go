package innertube

import (
	"encoding/json"
	"fmt"
)

// Every level of the response is optional: a value of an unexpected shape
// reads as absent, so only a body that is not JSON at all fails.
type nextResponse struct {
	OnResponseReceivedEndpoints optional[[]optional[responseEndpoint]] `json:"onResponseReceivedEndpoints"`
}

type responseEndpoint struct {
	AppendContinuationItemsAction  optional[itemHolder] `json:"appendContinuationItemsAction"`
	ReloadContinuationItemsCommand optional[itemHolder] `json:"reloadContinuationItemsCommand"`
}

type itemHolder struct {
	ContinuationItems optional[[]Node] `json:"continuationItems"`
}

// items returns the holder's item list, if it has one.
func (h *itemHolder) items() ([]Node, bool) {
	if h == nil {
		return nil, false
	}
	items, ok := h.ContinuationItems.get()
	if !ok {
		return nil, false
	}
	return *items, true
}

// ParsePage extracts the item list from a response body.
// Malformed JSON yields an error wrapping ErrFetchFailed. A body that is valid
// JSON but carries neither item shape yields an empty list.
func ParsePage(body []byte) ([]Node, error) {
	var resp optional[nextResponse]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrFetchFailed, err)
	}

	var endpoints []*responseEndpoint
	if r, ok := resp.get(); ok {
		if list, ok := r.OnResponseReceivedEndpoints.get(); ok {
			for _, ep := range *list {
				if e, ok := ep.get(); ok {
					endpoints = append(endpoints, e)
				}
			}
		}
	}

	for _, ep := range endpoints {
		holder, _ := ep.AppendContinuationItemsAction.get()
		if items, ok := holder.items(); ok {
			return items, nil
		}
	}
	for _, ep := range endpoints {
		holder, _ := ep.ReloadContinuationItemsCommand.get()
		if items, ok := holder.items(); ok {
			return items, nil
		}
	}
	return []Node{}, nil
}
