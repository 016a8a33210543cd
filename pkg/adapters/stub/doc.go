// Package stub provides deterministic, offline implementations of every
// generator collaborator and a keyword-based intent classifier.
//
// They let the server and the chat REPL run a whole session end to end
// without any external service, and give tests a predictable backend.
package stub
