// Package challenges holds the static challenge catalog and runs attempts
// through the code execution service.
package challenges

import (
	"errors"

	"github.com/devcompass/devcompass/internal/judge"
	"github.com/devcompass/devcompass/internal/progress"
)

// ErrUnknownChallenge is returned for ids not in the catalog.
var ErrUnknownChallenge = errors.New("unknown challenge")

// Level groups challenges by difficulty.
type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

// Challenge is one exercise of a track.
type Challenge struct {
	ID           string
	Track        progress.Track
	Level        Level
	Title        string
	Description  string
	Question     string
	StartingCode string

	check Checker
}

// Check reports whether the program output solves the challenge.
func (c *Challenge) Check(stdout string) bool {
	return c.check(stdout)
}

var pythonCatalog = []*Challenge{
	{
		ID:          "variables",
		Level:       Beginner,
		Title:       "Variables and Data Types",
		Description: "Learn about Python's basic data types and how to use variables.",
		Question:    "Create a variable 'name' with your name and print it",
		check:       nonEmpty(foldCase),
	},
	{
		ID:           "conditionals",
		Level:        Beginner,
		Title:        "Conditional Statements",
		Description:  "Learn how to use if, elif, and else statements in Python.",
		Question:     "Write an if statement to check if a number is positive or negative",
		StartingCode: "number = 5\n",
		check:        equals("positive", foldCase),
	},
	{
		ID:          "loops",
		Level:       Beginner,
		Title:       "Loops",
		Description: "Master for and while loops in Python.",
		Question:    "Create a for loop that prints numbers from 1 to 5",
		check:       equals("1\n2\n3\n4\n5", foldCase),
	},
	{
		ID:          "functions",
		Level:       Beginner,
		Title:       "Functions",
		Description: "Learn how to define and call functions in Python.",
		Question:    "Define a function that adds two numbers and print the result of adding 5 and 3",
		check:       equals("8", foldCase),
	},
	{
		ID:          "lists",
		Level:       Beginner,
		Title:       "Lists",
		Description: "Work with Python lists and list operations.",
		Question:    "Create a list of even numbers from 2 to 10",
		check:       equals("2,4,6,8,10", compact, stripChars("[]")),
	},
	{
		ID:          "dictionaries",
		Level:       Intermediate,
		Title:       "Dictionaries",
		Description: "Learn about key-value pairs with Python dictionaries.",
		Question:    "Create a dictionary with the keys name, age and city and print it",
		check:       pythonDictWithKeys("name", "age", "city"),
	},
	{
		ID:           "strings",
		Level:        Intermediate,
		Title:        "String Manipulation",
		Description:  "Master string operations and methods.",
		Question:     "Reverse a string using slicing",
		StartingCode: "text = 'Hello World'\n",
		check:        equals("dlrow olleh", foldCase),
	},
	{
		ID:          "fileio",
		Level:       Intermediate,
		Title:       "File I/O",
		Description: "Learn to read from and write to files.",
		Question:    "Write exactly this code to create and write to a text file:\nwith open('example.txt', 'w') as f:\n    f.write('Hello, World!')",
		check:       oneOf([]string{"", "hello, world!"}, foldCase),
	},
	{
		ID:           "exceptions",
		Level:        Intermediate,
		Title:        "Exception Handling",
		Description:  "Handle errors gracefully with try and except.",
		Question:     "Write a try/except block that handles division by zero and prints 'Cannot divide by zero'",
		StartingCode: "x = 10\ny = 0\n",
		check:        equals("cannot divide by zero", foldCase),
	},
	{
		ID:          "sets",
		Level:       Intermediate,
		Title:       "Sets",
		Description: "Use sets for unique collections and set algebra.",
		Question:    "Create the sets {1, 2, 3, 4} and {3, 4, 5, 6} and print their intersection",
		check:       oneOf([]string{"3,4", "4,3"}, compact, stripChars("{}")),
	},
}

var javascriptCatalog = []*Challenge{
	{
		ID:          "variables",
		Level:       Beginner,
		Title:       "Modern Variables",
		Description: "Learn about let, const, and modern variable declarations.",
		Question:    "Create a constant 'name' with your name and log it to the console",
		check:       nonEmpty(),
	},
	{
		ID:          "arrow_functions",
		Level:       Beginner,
		Title:       "Arrow Functions",
		Description: "Master ES6 arrow function syntax and usage.",
		Question:    "Convert this function to an arrow function and log add(5, 3): function add(a, b) { return a + b; }",
		check:       equals("8"),
	},
	{
		ID:           "array_methods",
		Level:        Beginner,
		Title:        "Array Methods",
		Description:  "Learn modern array methods like map, filter, and reduce.",
		Question:     "Use map to double each number in the array [1, 2, 3, 4, 5]",
		StartingCode: "const numbers = [1, 2, 3, 4, 5];\n",
		check:        equals("[2,4,6,8,10]", compact),
	},
	{
		ID:           "destructuring",
		Level:        Beginner,
		Title:        "Destructuring",
		Description:  "Master object and array destructuring patterns.",
		Question:     "Destructure name and age from this object and log them: { name: 'John', age: 30, city: 'NY' }",
		StartingCode: "const person = { name: 'John', age: 30, city: 'NY' };\n",
		check:        equals("John 30"),
	},
	{
		ID:          "promises",
		Level:       Beginner,
		Title:       "Promises",
		Description: "Learn to work with Promises for async operations.",
		Question:    "Create a Promise that resolves with 'Success!' after 1 second and log the result",
		check:       equals("Success!"),
	},
	{
		ID:          "async_await",
		Level:       Beginner,
		Title:       "Async/Await",
		Description: "Master modern async/await syntax.",
		Question:    "Create an async function that waits 1 second then returns 'Done!' and log the result",
		check:       equals("Done!"),
	},
	{
		ID:          "classes",
		Level:       Intermediate,
		Title:       "Classes",
		Description: "Learn ES6 class syntax and object-oriented programming.",
		Question:    "Create a class 'Person' with a name property and a greet method, then greet as 'John'",
		check:       equals("Hello, I'm John"),
	},
	{
		ID:          "modules",
		Level:       Intermediate,
		Title:       "ES Modules",
		Description: "Understand modern JavaScript modules and imports.",
		Question:    "Create a function called 'sum' that adds two numbers and log sum(5, 3)",
		check:       equals("8"),
	},
	{
		ID:           "template_literals",
		Level:        Intermediate,
		Title:        "Template Literals",
		Description:  "Master template strings and expressions.",
		Question:     "Use template literals to log \"Hello, my name is John and I am 25 years old\"",
		StartingCode: "const name = 'John';\nconst age = 25;\n",
		check:        equals("Hello, my name is John and I am 25 years old"),
	},
	{
		ID:           "spread_operator",
		Level:        Intermediate,
		Title:        "Spread Operator",
		Description:  "Learn to use the spread operator with arrays and objects.",
		Question:     "Combine two arrays using the spread operator",
		StartingCode: "const arr1 = [1, 2, 3];\nconst arr2 = [4, 5, 6];\n",
		check:        equals("[1,2,3,4,5,6]", compact),
	},
	{
		ID:           "array_reduce",
		Level:        Advanced,
		Title:        "Array Reduce",
		Description:  "Master the reduce method for arrays.",
		Question:     "Use reduce to sum all numbers in an array",
		StartingCode: "const numbers = [1, 2, 3, 4, 5];\n",
		check:        equals("15"),
	},
	{
		ID:          "error_handling",
		Level:       Advanced,
		Title:       "Error Handling",
		Description: "Learn to handle errors with try-catch blocks.",
		Question:    "Create a try-catch block that handles a TypeError and logs 'Caught TypeError'",
		check:       equals("Caught TypeError"),
	},
}

func init() {
	for _, c := range pythonCatalog {
		c.Track = progress.Python
	}
	for _, c := range javascriptCatalog {
		c.Track = progress.JavaScript
	}
}

// List returns the challenges of a track in catalog order.
func List(t progress.Track) ([]*Challenge, error) {
	switch t {
	case progress.Python:
		return pythonCatalog, nil
	case progress.JavaScript:
		return javascriptCatalog, nil
	default:
		return nil, progress.ErrUnknownTrack
	}
}

// Get looks up one challenge.
func Get(t progress.Track, id string) (*Challenge, error) {
	list, err := List(t)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, ErrUnknownChallenge
}

// Language maps a track to its execution language.
func Language(t progress.Track) (judge.Language, error) {
	switch t {
	case progress.Python:
		return judge.Python, nil
	case progress.JavaScript:
		return judge.JavaScript, nil
	default:
		return 0, progress.ErrUnknownTrack
	}
}
