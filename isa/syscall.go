package isa

// Well-known system-call numbers, reserved per the source language
// contract. Additional numbers may be registered at VM construction time
// (see package config), but these may never be overridden.
const (
	SyscallPrintLineFromStack   uint16 = 0x0011
	SyscallPrintStringFromStack uint16 = 0x0012
	SyscallReadLineToStack      uint16 = 0x0013
	SyscallDebugPrintWord       uint16 = 0x1500
)

// ReservedSyscalls lists the numbers that config-registered syscalls may
// not collide with.
var ReservedSyscalls = map[uint16]string{
	SyscallPrintLineFromStack:   "PRINT_LINE_FROM_STACK",
	SyscallPrintStringFromStack: "PRINT_STRING_FROM_STACK",
	SyscallReadLineToStack:      "READ_LINE_TO_STACK",
	SyscallDebugPrintWord:       "DEBUG_PRINT_WORD",
}
