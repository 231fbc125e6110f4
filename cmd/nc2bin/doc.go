// Package main hosts the nc2bin CLI entrypoint and command graph.
//
// The Cobra-based command tree converts NSIDC netCDF inputs into their legacy
// binary equivalents, previews the outputs a conversion would produce, lists
// the supported products, inspects dataset contents, and reports on the
// conversion manifest. It centralizes configuration resolution and structured
// logging setup so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: conversion rules live in internal/legacy and the run
// itself in internal/convert.
package main
