// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package main

func main() {
	Execute()
}
