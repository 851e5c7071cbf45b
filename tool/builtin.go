package tool

import "context"

// Weather returns the get_weather demo tool. It always reports 26 degrees.
func Weather() Tool {
	return New(
		"get_weather",
		"Returns the current temperature of a city as an integer.",
		ObjectSchema(map[string]any{
			"city": StringProperty("name of the city"),
		}, "city"),
		func(_ context.Context, args map[string]any) (any, error) {
			if _, err := StringArg(args, "city"); err != nil {
				return nil, err
			}
			return "26", nil
		},
	)
}

// Multiply returns the multiply tool computing a*b.
func Multiply() Tool {
	return New(
		"multiply",
		"Multiplies two integers a and b.",
		ObjectSchema(map[string]any{
			"a": IntegerProperty("first factor"),
			"b": IntegerProperty("second factor"),
		}, "a", "b"),
		func(_ context.Context, args map[string]any) (any, error) {
			a, err := IntArg(args, "a")
			if err != nil {
				return nil, err
			}
			b, err := IntArg(args, "b")
			if err != nil {
				return nil, err
			}
			return a * b, nil
		},
	)
}
