package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE graphs (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				nodes JSONB NOT NULL DEFAULT '[]',
				edges JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_graphs_created_at ON graphs(created_at);
			CREATE INDEX idx_graphs_deleted_at ON graphs(deleted_at);
		`,
		2: `
			CREATE TABLE executions (
				id VARCHAR(255) PRIMARY KEY,
				graph_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				failed_nodes JSONB NOT NULL DEFAULT '[]',
				records JSONB NOT NULL DEFAULT '[]',
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				finished_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_executions_graph_id ON executions(graph_id);
			CREATE INDEX idx_executions_started_at ON executions(started_at);
		`,
	}
}
