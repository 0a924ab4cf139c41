package perm_test

import (
	"fmt"

	"github.com/matzehuels/craneplan/pkg/perm"
)

func ExampleCombinations() {
	// Choose which two of three matching slots to unload.
	for _, c := range perm.Combinations(3, 2, 0) {
		fmt.Println(c)
	}
	// Output:
	// [0 1]
	// [0 2]
	// [1 2]
}

func ExampleProduct() {
	// Two names with two and three candidate choices each.
	fmt.Println(len(perm.Product([]int{2, 3}, 0)))
	fmt.Println(perm.Count([]int{2, 3}))
	// Output:
	// 6
	// 6
}

func ExampleBinomial() {
	fmt.Println("C(12, 4) =", perm.Binomial(12, 4))
	// Output:
	// C(12, 4) = 495
}
