// Package log is the leveled, printf-style logging used by graph runs.
//
// graph.WithLogger hands a Logger to the executor, which logs every step at
// debug level (node start, routing decision, resumed thread version) and a
// failed run at error level. graph.NewLoggingListener reports node durations
// at info level, and prebuilt.WithLogger passes the same Logger to the agent
// graph and its model calls. Without a logger, NoOpLogger is used.
//
// DefaultLogger writes through the standard library logger with Prefix;
// GologLogger forwards to a github.com/kataras/golog instance:
//
//	g := golog.New()
//	g.SetPrefix("[chat] ")
//	level, _ := log.ParseLevel(os.Getenv("LANGGRAPH_LOG_LEVEL"))
//	runnable, err := workflow.Compile(graph.WithLogger(log.NewGologLoggerWithLevel(g, level)))
package log
