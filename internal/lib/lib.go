// Package lib holds infrastructure that does not belong to a single layer,
// currently the background job queue used for event change notifications.
package lib
