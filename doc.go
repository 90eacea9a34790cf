// Package mindflux schedules review sessions over a concept graph built from
// a mind map: questions whose numbered answers lead to further questions,
// plus lateral sibling and connection links.
//
// A Scheduler walks the graph from the current position of a Session and
// returns the next due item, preferring the same question, then questions
// below the answers already shown, then the rest of the question's subtree,
// siblings, connections and connections of connections, and finally
// backtracking. Due classification (Learning, Review, New) comes from a
// DueIndex; the graph comes from a ConceptGraph.
//
// Basic usage:
//
//	s, err := mindflux.NewScheduler(graph, index, mindflux.SchedulerConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sess := mindflux.NewSession()
//	for {
//	    item, ok, err := s.Next(ctx, sess)
//	    if err != nil || !ok {
//	        break
//	    }
//	    show(item)
//	    sess.EnterOrContinue(item)
//	}
package mindflux
