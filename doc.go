/*
Package adflow is the orchestration core of a conversational creative-ad pipeline.

A session walks a fixed table of stages, from ingesting a product page to publishing an
ad campaign. Each call carries one user message (and optionally an explicit stage and
stage inputs); the engine resolves it to one navigation intent, runs at most one stage
and persists the session. Content generation is delegated to collaborators defined in
pkg/ports.

# Usage

	gen := stub.New()
	eng := adflow.New(gen.Collaborators())

	resp, err := eng.Handle(ctx, domain.Request{
		SessionID: "demo",
		Message:   "https://shop.example/widget",
	})
	if err != nil {
		log.Fatal(err) // store or lock failure
	}
	if resp.Error != nil {
		fmt.Println("stage failed:", *resp.Error)
	}

Stage failures never surface as Go errors: they are recorded on the state and returned
in Response.Error. Handle only fails when the session cannot be loaded, locked or saved.

# Persistence

Sessions live in memory by default. WithStore plugs any ports.StateStore (file, LRU,
Redis); WithLocker adds a distributed lock for multi-replica deployments.
*/
package adflow
