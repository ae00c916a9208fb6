// Copyright (c) 2025 BVK Chaitanya

package dataset

import "strings"

func joinArgs(args []string) string {
	return strings.Join(args, ",")
}
