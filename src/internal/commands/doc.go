// Package commands implements the listgen subcommands.
//
// Every command implements Runner:
//   - Init(): parse arguments and load what the command needs
//   - Run(): do the work
//   - Name(): return the command name for routing
//
// Available commands:
//   - generate: build all configured lists into an output directory
//   - verify: compare generated lists with their committed versions
//
// ExitCode maps the error returned by Init or Run to the process exit status:
// 0 on success, 2 when some lists failed, 1 for anything else.
package commands
