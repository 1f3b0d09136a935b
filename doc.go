/*
Package blueprint defines the vocabulary shared by the ledger runtime and the
programs it hosts: public keys, program-derived addresses, instructions,
storage interfaces and the capabilities a program handler is given.

A program never talks to the ledger directly. Each invocation receives an Env
carrying a SignerSet (who attested the transaction), a SlotStore (typed access
to program-owned storage) and a Deriver (the address derivation primitive).
Handlers are plain functions of those capabilities and are tested without a
ledger.

We pass context through context.Context between the runtime and handlers. To
do so, this package defines some common keys to store info, such as the
logger and the transaction signature. For every XYZ of type T supported in
the context there exist two functions:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)
*/
package blueprint
