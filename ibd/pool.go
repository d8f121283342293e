package ibd

import "sync"

//Task is one unit of work executed by the pool.
type Task interface {
	Run()
}

//Pool executes tasks on a fixed number of worker goroutines. Close the
//pool after the last AddTask and WaitAll before reading results.
type Pool struct {
	tasks chan Task
	wg    sync.WaitGroup
}

//NewPool starts workersNum workers waiting for tasks.
func NewPool(workersNum int) *Pool {
	pool := &Pool{tasks: make(chan Task)}
	for i := 0; i < workersNum; i++ {
		pool.wg.Add(1)
		go func() {
			defer pool.wg.Done()
			for task := range pool.tasks {
				task.Run()
			}
		}()
	}
	return pool
}

//AddTask submits a task; blocks until a worker is free to queue it.
func (pool *Pool) AddTask(task Task) {
	pool.tasks <- task
}

//Close signals that no more tasks will arrive.
func (pool *Pool) Close() {
	close(pool.tasks)
}

//WaitAll blocks until every submitted task has finished and the workers
//have exited.
func (pool *Pool) WaitAll() {
	pool.wg.Wait()
}
