// Package common provides the protocol vocabulary shared by every layer of
// the daemon client: the opcode table, the error-code table, the Command and
// Result types, configuration and logging.
//
// The package focuses on:
//   - A closed enumeration of all daemon commands with their extension shape
//   - Mapping of negative result codes to symbolic reasons
//   - Configuration structures for the client
//   - Custom logging implementation integrated with Dragonboat's logger package
//
// Key Components:
//
//   - Opcode: numeric command identifier with mnemonic, block flag and shape.
//     LookupOpcode resolves user input, MustOpcode panics for names that are
//     not part of the table.
//
//   - Command: immutable request (opcode, two parameters, extension words and
//     optional raw extension bytes). BuildCommand checks the extension shape.
//
//   - Result / HandleResult: the daemon's convention that a negative result is
//     an error code. Negative codes become a *DaemonError whose Reason() is
//     total, codes missing from the table yield UnknownReason.
//
//   - ClientConfig: endpoint, connect retry budget, reply timeout and socket
//     options.
package common
