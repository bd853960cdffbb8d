package catalog

import "strings"

// TagBlind75 marks entries that belong to the Blind 75 list.
const TagBlind75 = "blind75"

// Blind75Titles lists lower-cased title fragments of the Blind 75 problems.
// An entry is tagged when its lower-cased title contains any fragment.
var Blind75Titles = []string{
	"two sum", "best time to buy and sell stock", "contains duplicate", "product of array except self",
	"maximum subarray", "maximum product subarray", "find minimum in rotated sorted array",
	"search in rotated sorted array", "3sum", "container with most water",
	"sum of two integers", "number of 1 bits", "counting bits", "missing number", "reverse bits",
	"climbing stairs", "coin change", "longest increasing subsequence", "longest common subsequence",
	"word break", "combination sum", "house robber", "decode ways", "unique paths", "jump game",
	"clone graph", "course schedule", "pacific atlantic water flow", "number of islands",
	"longest consecutive sequence", "alien dictionary", "graph valid tree", "number of connected components",
	"insert interval", "merge intervals", "non-overlapping intervals", "meeting rooms",
	"reverse linked list", "detect cycle", "merge two sorted lists", "merge k sorted lists",
	"remove nth node", "reorder list",
	"set matrix zeroes", "spiral matrix", "rotate image", "word search",
	"longest substring without repeating", "longest repeating character replacement",
	"minimum window substring", "valid anagram", "group anagrams", "valid parentheses",
	"valid palindrome", "palindromic substrings", "encode and decode strings",
	"maximum depth of binary tree", "same tree", "invert binary tree", "binary tree maximum path sum",
	"binary tree level order traversal", "serialize and deserialize binary tree", "subtree of another tree",
	"construct binary tree from preorder", "validate binary search tree", "kth smallest element in a bst",
	"lowest common ancestor", "implement trie", "design add and search words",
}

// matchesCurated reports whether title contains any of the fragments.
func matchesCurated(title string, fragments []string) bool {
	lower := strings.ToLower(strings.TrimSpace(title))
	for _, f := range fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}
