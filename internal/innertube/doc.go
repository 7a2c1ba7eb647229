// Package innertube fetches continuation pages from the video site's private
// "next" endpoint and decodes the response into a list of raw nodes.
//
// The response has no schema contract. Items live under one of two shapes:
//
//	onResponseReceivedEndpoints[].appendContinuationItemsAction.continuationItems
//	onResponseReceivedEndpoints[].reloadContinuationItemsCommand.continuationItems
//
// The first ("append") is tried before the second ("reload"). When neither is
// present the page is empty, which is how the service reports the end of a
// branch.
//
// Nodes are returned undecoded. Each one is decoded on its own by Node.Decode
// so that a single malformed node cannot fail the whole page.
package innertube
