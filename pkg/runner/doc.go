/*
Package runner drives an interactive chat session against an Orchestrator.

It reads one line at a time, sanitizes it, hands it to the core and prints a
markdown summary of the resulting state. Rendering is pluggable: the CLI
passes a glamour renderer when stdout is a terminal, tests pass none.

A few lines are handled by the runner itself:

	exit, quit     end the session
	/state         dump the raw state as JSON
	/goto <stage>  target a stage explicitly
*/
package runner
