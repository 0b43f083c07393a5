package robinhood_test

import (
	"bufio"
	"fmt"
	"slices"
	"strings"

	"github.com/llxisdsh/robinhood"
)

func Example() {
	t, err := robinhood.New[string, int](robinhood.WithCapacity(16))
	if err != nil {
		panic(err)
	}
	fmt.Println(t.Set("apple", 10))
	fmt.Println(t.Set("banana", 20))
	fmt.Println(t.Set("apple", 100))
	fmt.Println(t.Get("apple", -1), t.Get("mango", -1))
	fmt.Println(t.Remove("banana"), t.Contains("banana"), t.Size())
	// Output:
	// true
	// true
	// false
	// 100 -1
	// true false 1
}

// Word count with a single probe per word.
func ExampleTable_Compute() {
	const text = "to be or not to be that is the question"
	t, err := robinhood.New[string, int]()
	if err != nil {
		panic(err)
	}
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		_ = t.Compute(sc.Text(), func(e *robinhood.Entry[string, int]) {
			e.Update(e.Value() + 1)
		})
	}
	words := slices.Sorted(t.Keys())
	for _, w := range words[:4] {
		fmt.Println(w, t.Get(w, 0))
	}
	// Output:
	// be 2
	// is 1
	// not 1
	// or 1
}

func ExampleTable_Ref() {
	t, _ := robinhood.New[string, int]()
	t.Set("requests", 0)
	for range 3 {
		*t.Ref("requests")++
	}
	fmt.Println(t.Get("requests", 0))
	// Output: 3
}

func ExampleNewWithStrategy() {
	t, err := robinhood.NewWithStrategy[[]byte, string](robinhood.BytesKeys())
	if err != nil {
		panic(err)
	}
	key := []byte("id-1")
	t.Set(key, "first")
	copy(key, "id-2")
	fmt.Println(t.Get([]byte("id-1"), "?"), t.Get([]byte("id-2"), "?"))

	_, err = t.TrySet(nil, "nil")
	fmt.Println(err)
	// Output:
	// first ?
	// robinhood: invalid key
}

func ExampleTable_Iter() {
	t, _ := robinhood.New[int, string]()
	for i, s := range []string{"zero", "one", "two"} {
		t.Set(i, s)
	}
	var lines []string
	for it := t.Iter(); it.Next(); {
		lines = append(lines, fmt.Sprintf("%d=%s", it.Key(), it.Value()))
	}
	slices.Sort(lines)
	fmt.Println(strings.Join(lines, " "))
	// Output: 0=zero 1=one 2=two
}
