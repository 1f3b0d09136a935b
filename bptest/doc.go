/*
Package bptest provides test doubles of the runtime capabilities handed to
programs, and helpers to create keys and stores in tests.
*/
package bptest
