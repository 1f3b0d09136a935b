/*
Package approval implements the multi-approver authorization program.

An authority freezes a set of approvers and a threshold in a Blueprint.
Anyone can then register a Proposal that commits to an off-ledger action by
its hash. Every approver may approve a proposal once and when the threshold
is reached, anyone may mark the proposal executed. Executed proposals never
change again.

Both records live in slots whose addresses are derived from seeds:

	Blueprint: ("blueprint", authority)
	Proposal:  ("proposal", blueprint address, payload hash)

so there is exactly one blueprint per authority and one proposal per
payload hash and blueprint.
*/
package approval
