/*
Stacklab is a teaching interpreter for a simplified Bitcoin Script. It runs a
program one instruction at a time and shows the stack before and after every
step, together with the verdict of the script.

Usage:

	stacklab [OPTIONS] [TOKEN...]

Tokens starting with OP_ are opcodes. Every other token is pushed as data:
decimal integers become numbers, true and false become booleans, 0x-prefixed
tokens are hex strings and anything else is text. Single quotes may be used to
push text that would otherwise parse as something else:

	stacklab OP_3 OP_5 OP_ADD OP_8 OP_EQUAL
	stacklab "'42'" OP_SIZE

When no tokens are given the program is read from --program-file, or from
stdin when it is not a terminal. Files and stdin may hold a YAML or JSON list
of tokens or plain whitespace-separated tokens.

For an up-to-date help message:

	stacklab --help

The long form of all option flags (except -C) can be specified in a
configuration file. By default, the configuration file is located at
~/.stacklab/stacklab.conf on POSIX-style operating systems and
%LOCALAPPDATA%\Stacklab\stacklab.conf on Windows. The -C (--configfile) flag
can be used to override this location.

The exit code is 0 when the script succeeds and 1 otherwise.
*/
package main
