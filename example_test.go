package rele_test

import (
	"fmt"

	"github.com/lessen/rele"
)

func ExampleCompile() {
	re, err := rele.Compile(`\d+`)
	if err != nil {
		panic(err)
	}
	fmt.Println(re.FindString("age: 42"))
	// Output: 42
}

func ExampleRegexp_FindAllString() {
	re := rele.MustCompile(`\d+`)
	fmt.Println(re.FindAllString("1 22 333", -1))
	// Output: [1 22 333]
}

func ExampleRegexp_FindStringSubmatch() {
	re := rele.MustCompile(`(\w+)@(\w+)\.(\w+)`)
	m := re.FindStringSubmatch("user@example.com")
	fmt.Println(m[1], m[2], m[3])
	// Output: user example com
}

func ExampleCompileFlags() {
	re := rele.MustCompileFlags(`hello`, rele.Caseless)
	fmt.Println(re.MatchString("HELLO WORLD"))
	// Output: true
}
