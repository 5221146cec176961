/*
Package issuance implements the human-approved credential workflow.

A requester submits an ask; the record is created pending and the bound
operator is offered an approve/reject choice. The status check and the
terminal transition are atomic in the store, so racing decisions
resolve to exactly one winner. Approval performs the external side
effect first (append one generated client identifier to the proxy
config, write it back, restart the proxy) and records the decision
only after that succeeds: any external failure leaves the request
pending and retriable. The whole external sequence runs under one
process-wide mutex because the collaborator offers no locking of its
own.
*/
package issuance
