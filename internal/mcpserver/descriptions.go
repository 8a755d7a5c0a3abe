package mcpserver

// Tool descriptions carry guidance on when to call a tool and how to read
// its output.

func describeFind() string {
	return `Computes the reachability set of compiled IR documents: every item, method, destructor and type node that code outside the crate could end up referring to.

USE WHEN:
- Deciding which items must keep their symbols in a library build
- Checking whether a refactor changed what a crate exposes
- Finding private items that are still reachable through exported generic or inline functions

INTERPRETING RESULTS:
- Each unit lists reachable nodes by id, kind, name and source location
- Private items appear when an exported generic or inlinable body names them
- Impls and structs with destructors are always retained
- A unit with "error" set has inconsistent inputs (unbound path or unexpanded macro); no set was produced
- The fingerprint changes exactly when the set changes

METRICS RETURNED:
- Per unit: file, name, node count, reachable count, fingerprint, cached flag, entries
- Summary: documents, analyzed, failed, inconsistent, cached, total reachable`
}

func describeExplain() string {
	return `Explains why a node of one IR document is reachable by returning the shortest chain of edges from the crate root, or lists groups of reachable nodes that refer to each other.

USE WHEN:
- A private item is unexpectedly reachable and you need to know which export pulls it in
- Auditing recursive generic functions before changing their visibility

INTERPRETING RESULTS:
- The chain starts at the crate and ends at the requested node
- Each link names why the edge was followed, e.g. export, implicit-export, body-ref, method-call, type-ref, dtor, parent, retention
- reachable=false means nothing exported leads to the node
- Cycles are groups of two or more reachable nodes that reach each other

METRICS RETURNED:
- node: id, kind, name, location
- chain: from, to and reason per link
- cycles: groups of nodes, each sorted by id`
}
