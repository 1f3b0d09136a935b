/*
Package ledger runs programs the way the host chain does, in process.

It keeps accounts (owner, lamports, data) in a KVStore, verifies the Ed25519
signatures of every transaction, dispatches each instruction to the program
it names and applies the whole transaction atomically: either every
instruction succeeds and all writes land, or nothing changes.

The system program, identified by the zero key, owns plain wallets. It moves
lamports and allocates slots on behalf of other programs. Programs allocate
through the SlotStore they receive, proving with seeds that the new address
is theirs.
*/
package ledger
